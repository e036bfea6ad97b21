package main

import (
	"fmt"
	"os"

	"github.com/hwameistor/array-csi/pkg/arrayctl/cmdparser"
)

func main() {
	err := cmdparser.Arrayctl.Execute()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
