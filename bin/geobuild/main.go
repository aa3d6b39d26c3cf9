package main

import (
	"log"

	"github.com/vis-sim/osgearth/cmd"
)

func main() {
	err := cmd.Run()
	if err != nil {
		log.Fatal(err.Error())
	}
}
