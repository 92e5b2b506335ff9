// Package pager splits record lists into pages small enough for a single
// chat message.
package pager

// MaxPageChars is the character budget per page, kept under Telegram's
// 4096-character message limit with headroom for titles.
const MaxPageChars = 3800

// Pages greedily packs items into pages whose rendered text stays within
// MaxPageChars. An item whose rendering alone exceeds the budget still
// occupies a page of its own. Empty input yields a single empty page.
func Pages[T any](items []T, render func(T) string) [][]T {
	var pages [][]T
	var current []T
	length := 0

	for _, item := range items {
		n := len(render(item))
		if length+n > MaxPageChars && len(current) > 0 {
			pages = append(pages, current)
			current = []T{item}
			length = n
			continue
		}
		current = append(current, item)
		length += n
	}
	if len(current) > 0 {
		pages = append(pages, current)
	}
	if len(pages) == 0 {
		pages = [][]T{{}}
	}
	return pages
}

// Clamp resets an out-of-range page index to the first page.
func Clamp(page, total int) int {
	if page < 0 || page >= total {
		return 0
	}
	return page
}
