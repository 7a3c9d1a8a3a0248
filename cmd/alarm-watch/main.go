package main

import "github.com/oshokin/wakeup-alarm/cmd/alarm-watch/cmd"

func main() {
	cmd.Execute()
}
