package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Init 初始化数据库连接并执行自动迁移。
// 必须在服务开始接受请求之前调用一次；databasePath 为空时回退到默认值 jumperlog.db。
func Init(databasePath string) error {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = "jumperlog.db"
	}

	if err := ensureParentDir(path); err != nil {
		return err
	}

	var err error
	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return err
	}

	// 自动迁移模式，为核心模型创建表
	if err = DB.AutoMigrate(
		&Batch{},
		&Spider{},
		&SpiderDayLog{},
		&Highlight{},
		&DayLog{},
	); err != nil {
		return err
	}

	// 增量迁移回填：booty 列是后加的，历史行补默认值 3
	if err := DB.Model(&SpiderDayLog{}).
		Where("booty IS NULL OR booty = 0").
		Update("booty", 3).Error; err != nil {
		return err
	}

	// 旧版本把 fed/ate/watered/molting 存成空串，统一回填为 no
	for _, column := range []string{"fed", "ate", "watered", "molting"} {
		if err := DB.Model(&SpiderDayLog{}).
			Where(column+" IS NULL OR "+column+" = ''").
			Update(column, "no").Error; err != nil {
			return err
		}
	}

	return nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
