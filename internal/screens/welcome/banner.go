package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/joeaphiboon/BiteSizedLearning/internal/ui/theme"
)

// Tagline appears under the banner.
const Tagline = "Learn something new in five minutes."

const bannerArt = `
 ╔╗ ╦╔╦╗╔═╗  ╔═╗╦╔═╗╔═╗╔╦╗
 ╠╩╗║ ║ ║╣   ╚═╗║╔═╝║╣  ║║
 ╚═╝╩ ╩ ╚═╝  ╚═╝╩╚═╝╚═╝═╩╝`

const bannerCompact = "B I T E S I Z E D"

// RenderBanner returns the banner styled in the primary color, with a
// compact fallback for terminals narrower than 40 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 40 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
