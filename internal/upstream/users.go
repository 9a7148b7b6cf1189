package upstream

import "context"

// User is an external worker identity used for assignment dropdowns.
type User struct {
	ID    string `json:"uId"`
	Name  string `json:"uName"`
	Email string `json:"uEmail"`
}

// GetUsers fetches the flat worker directory.
func (c *Client) GetUsers(ctx context.Context) ([]User, error) {
	raw, err := c.get(ctx, "get_users", "/api/user")
	if err != nil {
		return nil, err
	}
	return DecodeList[User](raw)
}
