package queue

import (
	"context"

	"github.com/hms/hms/internal/domain/identity"
)

// DirectoryAdapter bridges the identity service to the DoctorDirectory
// interface the queue depends on.
type DirectoryAdapter struct {
	Identity *identity.Service
}

func (d *DirectoryAdapter) FindDoctor(ctx context.Context, name string) (*Doctor, error) {
	account, err := d.Identity.FindDoctorByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return &Doctor{
		ID:         account.ID,
		Name:       account.Name,
		Department: account.Department,
	}, nil
}
