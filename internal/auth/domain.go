package auth

// Claims is the payload of a verified access token. Tokens are issued by the
// external identity provider; this service only verifies them.
type Claims struct {
	Sub   string `json:"sub"`   // user id
	Email string `json:"email"` // optional
	Iat   int64  `json:"iat"`   // issued at
	Exp   int64  `json:"exp"`   // expires at
}
