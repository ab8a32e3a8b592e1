package tui

// layout holds the inner sizes of the two panels for one terminal size.
// The filter sits on the first row and the help footer on the last.
type layout struct {
	listW int
	paneW int
	bodyH int
}

const (
	chromeRows = 2 // filter + footer
	borderSize = 2
	minInner   = 16
)

func newLayout(width, height int) layout {
	listOuter := width * 2 / 5
	return layout{
		listW: max(listOuter-borderSize, minInner),
		paneW: max(width-listOuter-borderSize, minInner),
		bodyH: max(height-chromeRows-borderSize, 3),
	}
}

type area int

const (
	areaNone area = iota
	areaList
	areaPane
)

// locate maps a screen cell to the panel under it and the row inside that
// panel's border.
func (l layout) locate(x, y int) (area, int) {
	row := y - 2 // filter row + top border
	if row < 0 || row >= l.bodyH {
		return areaNone, -1
	}
	paneLeft := l.listW + 3 // list border, list, list border, pane border
	switch {
	case x >= 1 && x <= l.listW:
		return areaList, row
	case x >= paneLeft && x < paneLeft+l.paneW:
		return areaPane, row
	}
	return areaNone, -1
}
