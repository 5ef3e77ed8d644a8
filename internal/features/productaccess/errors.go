package productaccess

import "errors"

var (
	ErrAccessNotFound = errors.New("product access not found")
	ErrProductMissing = errors.New("referenced product does not exist")
	ErrUserMissing    = errors.New("referenced user does not exist")
)

const duplicateMessage = "This user already has access to the product."
