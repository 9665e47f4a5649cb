package article

// Offset reduces a day offset to a rotation in [0, n). Offsets before the
// start date wrap around instead of going negative.
func Offset(days, n int) int {
	if n <= 0 {
		return 0
	}
	r := days % n
	if r < 0 {
		r += n
	}
	return r
}

// Rotate returns a new slice holding articles left-rotated by offset positions:
// element i of the result is articles[(offset+i) mod len(articles)].
func Rotate(articles []Article, offset int) []Article {
	out := make([]Article, 0, len(articles))
	if len(articles) == 0 {
		return out
	}
	r := Offset(offset, len(articles))
	out = append(out, articles[r:]...)
	out = append(out, articles[:r]...)
	return out
}

// DedupeByLink keeps the first article for each link. Articles without a link are dropped.
func DedupeByLink(articles []Article) []Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		link := a.Link()
		if link == "" {
			continue
		}
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		out = append(out, a)
	}
	return out
}
