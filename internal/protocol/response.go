package protocol

// Response is the uniform envelope returned from every operation.
// Success is true iff Code == CodeSuccess; Data is only meaningful when
// Success is true.
type Response[T any] struct {
	Data    T      `json:"data"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// OK wraps a successful result.
func OK[T any](data T) Response[T] {
	return Response[T]{
		Data:    data,
		Code:    CodeSuccess,
		Message: "OK",
		Success: true,
	}
}

// Fail wraps a failure outcome. Data is left at its zero value.
func Fail[T any](code Code, message string) Response[T] {
	return Response[T]{
		Code:    code,
		Message: message,
		Success: false,
	}
}
