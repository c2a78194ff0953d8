package httpapi

// Envelope keys mirror the calculator front end: every body carries "success",
// failures add "message", successful lookups add their payload keys.

type FailBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Fail builds the error envelope.
func Fail(message string) FailBody {
	return FailBody{Success: false, Message: message}
}

type OkBody struct {
	Success bool `json:"success"`
}

func Ok() OkBody {
	return OkBody{Success: true}
}

// ListBody is the envelope for row listings (search results).
type ListBody[T any] struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Results []T  `json:"results"`
}

func List[T any](results []T) ListBody[T] {
	if results == nil {
		results = []T{}
	}
	return ListBody[T]{Success: true, Count: len(results), Results: results}
}
