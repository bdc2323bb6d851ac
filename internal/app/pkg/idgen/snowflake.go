package idgen

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	once        sync.Once
	defaultNode *snowflake.Node
)

// Init 设置本实例的节点号（0-1023），需在首次生成 ID 前调用
func Init(nodeID int64) error {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	once.Do(func() {})
	defaultNode = node
	return nil
}

// GenerateID 生成捐赠记录的代理主键
func GenerateID() int64 {
	once.Do(func() {
		// 节点号 1 对 0-1023 永远合法
		defaultNode, _ = snowflake.NewNode(1)
	})
	return defaultNode.Generate().Int64()
}
