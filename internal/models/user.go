package models

/*
|--------------------------------------------------------------------------
| PROFILE
|--------------------------------------------------------------------------
| Contact record captured at sign-up, read back at sign-in
*/
type Profile struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

/*
|--------------------------------------------------------------------------
| IDENTITY
|--------------------------------------------------------------------------
| Token issued by the identity provider; opaque to the rest of the app
*/
type Identity struct {
	UserID    string `json:"user_id"`
	Token     string `json:"token"`
	Anonymous bool   `json:"anonymous"`
}

func (i *Identity) Valid() bool {
	return i != nil && i.UserID != "" && i.Token != ""
}
