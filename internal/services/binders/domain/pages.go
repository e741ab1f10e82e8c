package domain

// Page estimate heuristics. The rendered binder is not paginated here; the
// estimate assumes a cover page plus fixed items per section page.
const (
	coverPageCount    = 1
	documentsPerPage  = 6
	propertiesPerPage = 4
)

// EstimatePages returns the heuristic page count for a binder with the
// given item counts. An empty binder is still one cover page.
func EstimatePages(documentCount int, propertyCount int) int {
	pages := coverPageCount
	if documentCount > 0 {
		pages += (documentCount + documentsPerPage - 1) / documentsPerPage
	}
	if propertyCount > 0 {
		pages += (propertyCount + propertiesPerPage - 1) / propertiesPerPage
	}
	return pages
}
