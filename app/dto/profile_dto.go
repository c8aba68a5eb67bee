package dto

// ProfileResponse is the API view of a profile
type ProfileResponse struct {
	ID         string  `json:"id"`
	Role       string  `json:"role"`
	BrokerCode *string `json:"broker_code"`
	FullName   *string `json:"full_name"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// UpdateMyProfileRequest lets a user change their own display name only
type UpdateMyProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,max=100"`
}

// AdminUpdateProfileRequest lets an admin change role, broker code and name.
// An empty broker_code string clears the code.
type AdminUpdateProfileRequest struct {
	Role       *string `json:"role,omitempty" validate:"omitempty,oneof=admin broker"`
	BrokerCode *string `json:"broker_code,omitempty" validate:"omitempty,max=50"`
	FullName   *string `json:"full_name,omitempty" validate:"omitempty,max=100"`
}

// ListProfilesRequest filters the admin user listing
type ListProfilesRequest struct {
	PaginationRequest
	Role *string `json:"role,omitempty" query:"role" validate:"omitempty,oneof=admin broker"`
}

// ListProfilesResponse is a page of profiles
type ListProfilesResponse struct {
	Items      []ProfileResponse `json:"items"`
	Pagination PaginationInfo    `json:"pagination"`
}

// BrokerOption is a broker entry for selection lists
type BrokerOption struct {
	ID         string  `json:"id"`
	BrokerCode string  `json:"broker_code"`
	FullName   *string `json:"full_name"`
}
