package main

import "github.com/colourscan/colourscan/cmd/colourscan"

func main() { colourscan.Execute() }
