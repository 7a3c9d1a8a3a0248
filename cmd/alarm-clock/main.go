package main

import "github.com/oshokin/wakeup-alarm/cmd/alarm-clock/cmd"

func main() {
	cmd.Execute()
}
