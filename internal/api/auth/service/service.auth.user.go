// Package authsvc - service người dùng (User).
package authsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	authdto "github.com/devwander/localiza-tech-api/internal/api/auth/dto"
	models "github.com/devwander/localiza-tech-api/internal/api/auth/models"
	basesvc "github.com/devwander/localiza-tech-api/internal/api/base/service"
	"github.com/devwander/localiza-tech-api/internal/common"
	"github.com/devwander/localiza-tech-api/internal/global"
	"github.com/devwander/localiza-tech-api/internal/logger"
	"github.com/devwander/localiza-tech-api/internal/utility"
)

// tokenTTL thời hạn của token đăng nhập
const tokenTTL = 72 * time.Hour

// UserService là cấu trúc chứa các phương thức liên quan đến người dùng
type UserService struct {
	*basesvc.BaseServiceMongoImpl[models.User]
}

// NewUserService tạo mới UserService
func NewUserService() (*UserService, error) {
	userCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("failed to get users collection: %v", common.ErrNotFound)
	}

	return &UserService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.User](userCollection),
	}, nil
}

// Register đăng ký người dùng mới với email và mật khẩu.
// Email phải chưa được sử dụng, mật khẩu được băm bằng bcrypt trước khi lưu.
func (s *UserService) Register(ctx context.Context, input *authdto.UserRegisterInput) (*models.User, error) {
	// Kiểm tra email đã tồn tại chưa
	_, err := s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"email": input.Email}, nil)
	if err == nil {
		return nil, common.NewError(common.ErrCodeAuthCredentials, "Email đã được sử dụng", common.StatusConflict, nil)
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := utility.HashPassword(input.Password)
	if err != nil {
		return nil, common.NewError(common.ErrCodeInternalServer, "Lỗi băm mật khẩu", common.StatusInternalServerError, err)
	}

	user, err := s.BaseServiceMongoImpl.InsertOne(ctx, models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: hashedPassword,
	})
	if err != nil {
		return nil, err
	}

	logger.WithModule("auth").WithField("user_id", user.ID.Hex()).Info("Register: Đăng ký thành công")
	return &user, nil
}

// Login đăng nhập bằng email và mật khẩu.
// Token mới được phát hành và lưu vào user, token cũ (nếu có) mất hiệu lực.
func (s *UserService) Login(ctx context.Context, input *authdto.UserLoginInput) (*models.User, error) {
	user, err := s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"email": input.Email}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := utility.ComparePassword(user.Password, input.Password); err != nil {
		logger.WithModule("auth").WithField("user_id", user.ID.Hex()).Warn("Login: Sai mật khẩu")
		return nil, common.ErrInvalidCredentials
	}

	if user.IsBlock {
		return nil, common.NewError(common.ErrCodeAuth, "Tài khoản đã bị khóa: "+user.BlockNote, common.StatusForbidden, nil)
	}

	token, err := utility.CreateToken(global.MongoDB_ServerConfig.JwtSecret, user.ID.Hex(), tokenTTL)
	if err != nil {
		return nil, common.NewError(common.ErrCodeInternalServer, "Lỗi tạo token", common.StatusInternalServerError, err)
	}

	updatedUser, err := s.BaseServiceMongoImpl.UpdateById(ctx, user.ID, &basesvc.UpdateData{
		Set: map[string]interface{}{"token": token},
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": user.ID.Hex(), "error": err.Error()}).Error("Login: Lỗi khi cập nhật token vào user")
		return nil, err
	}

	logger.WithModule("auth").WithField("user_id", updatedUser.ID.Hex()).Info("Login: Đăng nhập thành công")
	return &updatedUser, nil
}

// Logout đăng xuất người dùng (xóa token hiện hành)
func (s *UserService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.BaseServiceMongoImpl.UpdateById(ctx, userID, &basesvc.UpdateData{
		Unset: map[string]interface{}{"token": ""},
	})
	if err != nil {
		return err
	}
	logger.WithModule("auth").WithField("user_id", userID.Hex()).Info("Logout: Đăng xuất thành công")
	return nil
}

// ChangeInfo thay đổi thông tin người dùng (hiện tại chỉ tên)
func (s *UserService) ChangeInfo(ctx context.Context, userID primitive.ObjectID, input *authdto.UserChangeInfoInput) (*models.User, error) {
	updateData := &basesvc.UpdateData{Set: make(map[string]interface{})}
	if input.Name != "" {
		updateData.Set["name"] = input.Name
	}
	user, err := s.BaseServiceMongoImpl.UpdateById(ctx, userID, updateData)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword đổi mật khẩu người dùng.
// Mật khẩu cũ phải khớp, token hiện hành bị xóa buộc đăng nhập lại.
func (s *UserService) ChangePassword(ctx context.Context, userID primitive.ObjectID, input *authdto.UserChangePasswordInput) error {
	user, err := s.BaseServiceMongoImpl.FindOneById(ctx, userID)
	if err != nil {
		return err
	}

	if err := utility.ComparePassword(user.Password, input.OldPassword); err != nil {
		return common.ErrInvalidCredentials
	}

	hashedPassword, err := utility.HashPassword(input.NewPassword)
	if err != nil {
		return common.NewError(common.ErrCodeInternalServer, "Lỗi băm mật khẩu", common.StatusInternalServerError, err)
	}

	_, err = s.BaseServiceMongoImpl.UpdateById(ctx, userID, &basesvc.UpdateData{
		Set:   map[string]interface{}{"password": hashedPassword},
		Unset: map[string]interface{}{"token": ""},
	})
	return err
}
