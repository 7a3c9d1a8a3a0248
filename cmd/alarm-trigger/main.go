package main

import "github.com/oshokin/wakeup-alarm/cmd/alarm-trigger/cmd"

func main() {
	cmd.Execute()
}
