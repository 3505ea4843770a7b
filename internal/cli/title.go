package cli

import (
	"fmt"
	"image/png"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tilerow/pkg/glyph"
)

// shadeRamp maps coverage to characters, lightest first.
const shadeRamp = " .:-=+*#%@"

// titleCommand rasterizes text the way row titles are rasterized.
func (c *CLI) titleCommand() *cobra.Command {
	var (
		output string
		size   float64
		dpi    float64
	)

	cmd := &cobra.Command{
		Use:   "title <text>",
		Short: "Rasterize a row title",
		Long: `Rasterize text with the title font and either preview it in the terminal
or write it as a grayscale PNG.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			text := c.cfg.Text
			if size > 0 {
				text.Size = size
			}
			if dpi > 0 {
				text.DPI = dpi
			}
			face, err := newFace(text)
			if err != nil {
				return err
			}
			defer face.Close()

			bmp := glyph.NewRasterizer(glyph.NewFaceShaper(face), logger).Rasterize(args[0])
			if bmp.Empty() {
				printWarning("Nothing to draw")
				return nil
			}

			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), asciiPreview(bmp))
				return nil
			}
			if err := writePNG(output, bmp); err != nil {
				return err
			}
			printSuccess("Rasterized %dx%d title", bmp.Width, bmp.Height)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write a PNG instead of printing a preview")
	cmd.Flags().Float64Var(&size, "size", 0, "font size in points (default from config)")
	cmd.Flags().Float64Var(&dpi, "dpi", 0, "resolution (default from config)")
	return cmd
}

func writePNG(path string, bmp glyph.Bitmap) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, bmp.Image()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// asciiPreview renders a bitmap with one character per column and per two
// rows, since terminal cells are about twice as tall as they are wide.
func asciiPreview(bmp glyph.Bitmap) string {
	var b strings.Builder
	last := len(shadeRamp) - 1
	for y := 0; y < bmp.Height; y += 2 {
		for x := 0; x < bmp.Width; x++ {
			v := max(int(bmp.At(x, y)), int(bmp.At(x, y+1)))
			b.WriteByte(shadeRamp[v*last/255])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
