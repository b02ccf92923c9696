package event

import "time"

const OtpChallengeDestination string = "otp_challenge_email"
const OtpChallengeDestinationConsumerNotification string = "otp_challenge_email_notification"

type OtpChallengeMessage struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Code      string    `json:"code"`
	Hash      string    `json:"hash"`
	ExpiresAt time.Time `json:"expires_at"`
}
