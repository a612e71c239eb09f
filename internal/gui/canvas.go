// Preview display
package gui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// PreviewCanvas shows the most recent rendered preview frame.
type PreviewCanvas struct {
	image *canvas.Image
	card  *widget.Card
}

func NewPreviewCanvas() *PreviewCanvas {
	pc := &PreviewCanvas{}
	pc.image = canvas.NewImageFromImage(placeholder())
	pc.image.FillMode = canvas.ImageFillContain
	pc.image.ScaleMode = canvas.ImageScalePixels
	pc.image.SetMinSize(fyne.NewSize(480, 270))
	pc.card = widget.NewCard("Preview", "", pc.image)
	return pc
}

func placeholder() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 200, 150))
	for y := 0; y < 150; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.RGBA{240, 240, 240, 255})
		}
	}
	return img
}

func (pc *PreviewCanvas) GetContainer() fyne.CanvasObject {
	return pc.card
}

// Update replaces the displayed image. Must run on the fyne thread.
func (pc *PreviewCanvas) Update(img image.Image) {
	if img == nil || img.Bounds().Empty() {
		return
	}
	// clear File and Resource or Image is ignored
	pc.image.File = ""
	pc.image.Resource = nil
	pc.image.Image = img
	pc.image.Refresh()
}

// Clear shows the placeholder.
func (pc *PreviewCanvas) Clear() {
	pc.Update(placeholder())
}

// SetTitle sets the card subtitle, typically the loaded file.
func (pc *PreviewCanvas) SetTitle(subtitle string) {
	pc.card.SetSubTitle(subtitle)
}
