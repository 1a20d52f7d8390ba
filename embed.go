package glow

import "embed"

//go:embed web/templates web/static
var WebAssets embed.FS

//go:embed web/logo.png
var LogoData []byte
