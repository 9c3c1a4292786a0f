package canvasrenderer

import "github.com/plotgrid/richlabel/label"

// Box placement math, kept free of canvas types so it can be tested without
// fonts. All values are millimeters in a y-up coordinate system.

// boxPlacement locates the border box and the text block for one label.
// BoxX/BoxY and TextX/TextY are bottom-left origins.
type boxPlacement struct {
	BoxX, BoxY   float64
	BoxW, BoxH   float64
	TextX, TextY float64
}

// placeBox anchors a label at (ax, ay). The justification fraction selects
// which point of the margin-extended box sits on the anchor: 0 aligns the
// left/bottom edge, 1 the right/top edge. Padding grows the box around the
// text; margin offsets the box away from the anchor.
func placeBox(ax, ay, textW, textH float64, pad, margin label.ResolvedInset, hjust, vjust float64) boxPlacement {
	boxW := textW + pad.Left + pad.Right
	boxH := textH + pad.Top + pad.Bottom
	outerW := boxW + margin.Left + margin.Right
	outerH := boxH + margin.Top + margin.Bottom

	boxX := ax - hjust*outerW + margin.Left
	boxY := ay - vjust*outerH + margin.Bottom
	return boxPlacement{
		BoxX:  boxX,
		BoxY:  boxY,
		BoxW:  boxW,
		BoxH:  boxH,
		TextX: boxX + pad.Left,
		TextY: boxY + pad.Bottom,
	}
}
