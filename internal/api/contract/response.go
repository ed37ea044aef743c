package contract

import "github.com/gofiber/fiber/v2"

type Response struct {
	Successful bool   `json:"successful"`
	Code       string `json:"code"`
	Message    string `json:"message,omitempty"`
	TrackID    string `json:"x_track_id"`
	Result     any    `json:"result"`
}

func Success(trackID, message string, result any) Response {
	return Response{
		Successful: true,
		Code:       "success",
		Message:    message,
		TrackID:    trackID,
		Result:     result,
	}
}

// TrackIDKey is the fiber locals key holding the request track id.
const TrackIDKey = "x_track_id"

func TrackID(c *fiber.Ctx) string {
	id, _ := c.Locals(TrackIDKey).(string)
	return id
}
