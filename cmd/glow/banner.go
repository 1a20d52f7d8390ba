package main

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/fatih/color"
	"github.com/qeesung/image2ascii/convert"

	"glow"
)

// printBanner shows the logo and project credits unless
// STARTUP_LOG_ACTIVE=false.
func printBanner() {
	if os.Getenv("STARTUP_LOG_ACTIVE") == "false" {
		return
	}
	printAsciiLogo()
	printSignature()
}

func printAsciiLogo() {
	img, _, err := image.Decode(bytes.NewReader(glow.LogoData))
	if err != nil {
		fmt.Println("GLOW WEDDING")
		return
	}

	opts := convert.DefaultOptions
	opts.FixedWidth = 35
	opts.FixedHeight = 17

	converter := convert.NewImageConverter()
	fmt.Print(converter.Image2ASCIIString(img, &opts))
}

func printSignature() {
	rose := color.New(color.FgHiMagenta, color.Bold).SprintFunc()
	white := color.New(color.FgWhite).SprintFunc()

	fmt.Println()
	fmt.Printf("%s : %s\n", rose("Project    "), white("GLOW Wedding"))
	fmt.Printf("%s : %s\n", rose("Tagline    "), white("Thiệp cưới online, chỉnh sửa trực tiếp"))
	fmt.Println()
}
