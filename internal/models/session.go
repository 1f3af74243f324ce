package models

type Role string

const (
	RoleField Role = "FIELD"
	RoleHQ    Role = "HQ"
)

// AuthState is persisted under the "auth" key.
type AuthState struct {
	IsAuthenticated bool `json:"isAuthenticated"`
	UserRole        Role `json:"userRole"`
}

// Officer is persisted under the "officer" key and registered once per device.
type Officer struct {
	DeviceID string `json:"deviceId"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}
