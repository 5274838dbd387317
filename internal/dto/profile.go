package dto

// ── 用户档案模块 DTO ──

// CreateProfileRequest 创建用户请求（管理端）
type CreateProfileRequest struct {
	FirstName string `json:"first_name" binding:"required,max=50"`
	LastName  string `json:"last_name"  binding:"required,max=50"`
	Email     string `json:"email"      binding:"required,email"`
	Password  string `json:"password"   binding:"required,min=8,max=64"`
	Role      string `json:"role"       binding:"required,oneof=admin manager intervenant"`
	Language  string `json:"language"   binding:"omitempty,oneof=fr en"`
}

// UpdateProfileRequest 更新用户请求，nil 字段不变更
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=50"`
	LastName  *string `json:"last_name"  binding:"omitempty,max=50"`
	Role      *string `json:"role"       binding:"omitempty,oneof=admin manager intervenant"`
	Language  *string `json:"language"   binding:"omitempty,oneof=fr en"`
}

// ProfileListRequest 用户列表查询参数
type ProfileListRequest struct {
	PaginationRequest
	Role string `form:"role" binding:"omitempty,oneof=admin manager intervenant"`
}
