package catalog

// Card is a rendered catalog entry.
type Card struct {
	Code          int    `json:"code"`
	Message       string `json:"message"`
	Image         string `json:"image"`
	FallbackImage string `json:"fallbackImage"`
}

// View is everything the renderer needs to draw the catalog for a filter.
type View struct {
	Filter  FilterState `json:"filter"`
	Summary string      `json:"summary"`
	Count   int         `json:"count"`
	Results []Card      `json:"results"`
}

// Render filters the catalog and projects the result into a View.
func Render(f FilterState) View {
	matched := Filter(Records(), f)
	cards := make([]Card, len(matched))
	for i, r := range matched {
		cards[i] = Card{
			Code:          r.Code,
			Message:       r.Message,
			Image:         ImageURL(r.Code),
			FallbackImage: FallbackImageURL(r.Code),
		}
	}
	return View{
		Filter:  f,
		Summary: Summary(f, len(matched)),
		Count:   len(matched),
		Results: cards,
	}
}
