package utils

import "github.com/fatih/color"

var (
	Bold    = color.New(color.Bold)
	Red     = color.New(color.FgRed)
	HiGreen = color.New(color.FgHiGreen)
	Warn    = color.New(color.FgYellow)
	Success = color.New(color.FgGreen, color.Bold)
)
