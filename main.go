/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/rysweet/azure-tenant-grapher-sub012/cmd"

func main() {
	cmd.Execute()
}
