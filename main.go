package main

import (
	"github.com/hsadmin/fancontrol/cmd"
)

func main() {
	cmd.Execute()
}
