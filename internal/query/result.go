package query

// Result is the façade's answer to a query. A false Success carries the
// data source's message; an empty Data with Success true means no matches.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

func succeed[T any](data T, total int, message string) Result[T] {
	if message == "" {
		message = defaultSuccessMessage
	}
	return Result[T]{Success: true, Data: data, Total: total, Message: message}
}

func succeedList[T any](data []T, message string) Result[[]T] {
	if data == nil {
		data = []T{}
	}
	return succeed(data, len(data), message)
}

func failed[T any](resp Response) Result[T] {
	message := resp.Message
	if message == "" {
		message = defaultFailureMessage
	}
	return Result[T]{Success: false, Message: message}
}

// failedList is failed with an empty, non-nil slice so it encodes as [].
func failedList[T any](resp Response) Result[[]T] {
	r := failed[[]T](resp)
	r.Data = []T{}
	return r
}
