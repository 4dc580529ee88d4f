package serverutils

// BaseResponse is the uniform envelope every endpoint returns. ErrorKind is
// only set on failures and is the machine-readable side of Message.
type BaseResponse[T any] struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorKind string `json:"error_kind,omitempty"`
	Data      T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(kind, message string) BaseResponse[any] {
	return BaseResponse[any]{
		Success:   false,
		ErrorKind: kind,
		Message:   message,
	}
}
