package main

import "github.com/lehigh-university-libraries/bibjson/cmd"

func main() {
	cmd.Execute()
}
