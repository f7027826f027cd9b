package serverutils

// SuccessEnvelope is the base shape of every success response.
type SuccessEnvelope struct {
	Success bool `json:"success"`
}

// ErrorEnvelope is the uniform failure shape.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func OK() SuccessEnvelope {
	return SuccessEnvelope{Success: true}
}

func Fail(message string) ErrorEnvelope {
	return ErrorEnvelope{Success: false, Error: message}
}
