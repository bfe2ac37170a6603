package types

// ResponseEnvelope is the wire shape every endpoint returns. The fields mirror
// the contract the web frontend already consumes.
type ResponseEnvelope struct {
	StatusCode   int      `json:"StatusCode"`
	IsSuccess    bool     `json:"IsSuccess"`
	ErrorMessage []string `json:"ErrorMessage"`
	Result       any      `json:"Result"`
}
