package main

import "github.com/edugrid/portal/cmd/edugridctl/cmd"

func main() {
	cmd.Execute()
}
