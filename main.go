package main

import (
	"embed"
	"io/fs"

	"github.com/nexbyte/hackmd/cmd"
)

//go:embed templates/views templates/pdf
var templates embed.FS

//go:embed config/config.yaml
var configDefault string

func main() {
	views, err := fs.Sub(templates, "templates/views")
	if err != nil {
		panic(err)
	}
	pdf, err := fs.Sub(templates, "templates/pdf")
	if err != nil {
		panic(err)
	}

	cmd.Execute(cmd.Assets{
		ConfigDefault: configDefault,
		Views:         views,
		PDFTemplates:  pdf,
	})
}
