package main

import (
	"github.com/outofforest/gkibuild"
)

func main() {
	gkibuild.Main()
}
