package model

// ==================== 商品分类常量 ====================

const (
	ProductCategoryReport     = "project_report"  // 项目报告
	ProductCategoryAssignment = "assignment_pack" // 作业包
)

// ==================== Product 商品 ====================

// Product 数字商品（一口价，交付物存对象存储）
type Product struct {
	BaseModel

	Name        string  `gorm:"size:255;not null" json:"name"`
	Slug        string  `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"not null" json:"price"` // 卢比
	Category    string  `gorm:"size:64;index" json:"category"`

	// 交付物在对象存储中的 key，下载时换签名 URL
	AssetKey string `gorm:"size:512" json:"-"`

	Active bool `gorm:"default:true;index" json:"active"`
}

func (*Product) TableName() string {
	return "products"
}
