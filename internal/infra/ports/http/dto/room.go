package dto

type AddSongRequest struct {
	Query string `json:"query"`
}

type AddSongResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Added   int    `json:"added"`
}

type SetPlayStateRequest struct {
	Playing bool `json:"playing"`
}
