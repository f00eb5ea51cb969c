// Command menu-monitor checks restaurant menu pages for dishes of interest.
package main

import "github.com/JakeFAU/menu-monitor/cmd"

func main() {
	cmd.Execute()
}
