package service

import (
	"context"

	"github.com/muhasebehub/muhasebe.go/db/models"
	"github.com/muhasebehub/muhasebe.go/lib/security"
)

func (svc *LedgerService) CreateUser(ctx context.Context, login string, password string, superuser bool) (user *models.User, err error) {

	user = &models.User{Superuser: superuser, Active: true}

	// generate user login/password if not provided
	user.Login = login
	if login == "" {
		randLoginBytes, err := randBytesFromStr(20, alphaNumBytes)
		if err != nil {
			return nil, err
		}
		user.Login = string(randLoginBytes)
	}

	if password == "" {
		randPasswordBytes, err := randBytesFromStr(20, alphaNumBytes)
		if err != nil {
			return nil, err
		}
		password = string(randPasswordBytes)
	}

	// we only store the hashed password but return the initial plain text password in the HTTP response
	hashedPassword, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user.Password = hashedPassword

	if _, err := svc.DB.NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, err
	}
	//return actual password in the response, not the hashed one
	user.Password = password
	return user, nil
}

func (svc *LedgerService) FindUser(ctx context.Context, userId int64) (*models.User, error) {
	var user models.User

	err := svc.DB.NewSelect().Model(&user).Where("id = ?", userId).Limit(1).Scan(ctx)
	if err != nil {
		return &user, notFound(err, "user", userId)
	}
	return &user, nil
}

func (svc *LedgerService) FindUserByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User

	err := svc.DB.NewSelect().Model(&user).Where("login = ?", login).Limit(1).Scan(ctx)
	if err != nil {
		return &user, err
	}
	return &user, nil
}

// UpdateUser changes the password, active flag or superuser flag of a user.
// Nil arguments are left untouched.
func (svc *LedgerService) UpdateUser(ctx context.Context, userId int64, password *string, active *bool, superuser *bool) (*models.User, error) {
	user, err := svc.FindUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	columns := []string{"updated_at"}
	if password != nil && *password != "" {
		hashed, err := security.HashPassword(*password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
		columns = append(columns, "password")
	}
	if active != nil {
		user.Active = *active
		columns = append(columns, "active")
	}
	if superuser != nil {
		user.Superuser = *superuser
		columns = append(columns, "superuser")
	}
	if _, err := svc.DB.NewUpdate().Model(user).Column(columns...).WherePK().Exec(ctx); err != nil {
		return nil, err
	}
	return user, nil
}
