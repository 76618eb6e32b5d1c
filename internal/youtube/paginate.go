package youtube

// collectPages drains a continuation-token listing. fetch returns one page of
// items plus the next page token; an empty token ends the walk. A positive
// limit truncates the result to exactly that many items.
func collectPages[T any](fetch func(pageToken string) ([]T, string, error), limit int) ([]T, error) {
	var items []T
	token := ""
	for {
		page, next, err := fetch(token)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
		if limit > 0 && len(items) >= limit {
			return items[:limit], nil
		}
		if next == "" {
			return items, nil
		}
		token = next
	}
}
