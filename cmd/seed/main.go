// cmd/seed/main.go
// 生成示例藏品集合，便于本地开发和演示
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/LeizhouHeritage/StoneDogGallery/internal/config"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/models"
)

// 各部位的示例取值，对应 static/images/traits 下的素材文件名
var sampleValues = map[string][]string{
	"身体": {"玄武岩", "红砂岩", "青石"},
	"头":  {"昂首", "低伏", "侧望"},
	"耳朵": {"竖耳", "垂耳"},
	"眼睛": {"圆睁", "眯眼", "铜铃"},
	"鼻子": {"宽鼻", "尖鼻"},
	"嘴巴": {"衔珠", "露齿", "闭口"},
	"装饰": {"铜钱", "红绸", "铃铛", "无"},
}

func main() {
	count := flag.Int("count", 24, "生成的藏品数量")
	output := flag.String("output", filepath.Join("data", "collection.json"), "输出文件路径")
	flag.Parse()

	log.Println("🚀 生成示例石狗藏品集合...")

	traits := config.DefaultTraitConfig()
	items := make([]models.Item, 0, *count)

	for i := 0; i < *count; i++ {
		tag := traits.Tags[i%len(traits.Tags)]
		name := fmt.Sprintf("%s狗·雷州%02d号", tag, i+1)

		attributes := make([]models.Attribute, 0, len(traits.Categories))
		images := make(map[string]string, len(traits.Categories))

		for j, category := range traits.Categories {
			values := sampleValues[category]
			value := values[(i+j)%len(values)]

			attributes = append(attributes, models.Attribute{
				TraitType: category,
				Value:     value,
			})
			images[category] = traits.ResolveAssetPath(category, value)
		}

		items = append(items, models.Item{
			Name:        name,
			Description: fmt.Sprintf("雷州半岛出土的石狗造像，编号%02d，寓意「%s」。", i+1, tag),
			Image:       images,
			Attributes:  attributes,
		})
	}

	if err := os.MkdirAll(filepath.Dir(*output), 0755); err != nil {
		log.Fatalf("❌ 创建输出目录失败: %v", err)
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		log.Fatalf("❌ 序列化藏品集合失败: %v", err)
	}

	if err := os.WriteFile(*output, data, 0644); err != nil {
		log.Fatalf("❌ 写入集合文件失败: %v", err)
	}

	log.Printf("✅ 已生成 %d 件藏品: %s", len(items), *output)
}
