package model

// Account is the only persisted entity. OTP expiry instants are unix milliseconds;
// an empty OTP means no challenge is pending.
type Account struct {
	ID                string `json:"id" bson:"_id"`
	Name              string `json:"name" bson:"name"`
	Email             string `json:"email" bson:"email"`
	PasswordHash      string `json:"-" bson:"password"`
	IsVerified        bool   `json:"is_account_verified" bson:"isAccountVerified"`
	VerifyOTP         string `json:"-" bson:"verifyOtp"`
	VerifyOTPExpireAt int64  `json:"-" bson:"verifyOtpExpireAt"`
	ResetOTP          string `json:"-" bson:"resetOtp"`
	ResetOTPExpireAt  int64  `json:"-" bson:"resetOtpExpireAt"`
	Ctime             int64  `json:"ctime" bson:"ctime"`
	Mtime             int64  `json:"mtime" bson:"mtime"`
}
