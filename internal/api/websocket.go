// internal/api/websocket.go
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LeizhouHeritage/StoneDogGallery/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocket 升级器配置
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 在生产环境中应该进行更严格的检查
		return true
	},
}

// WishClient 表示许愿池的一个在线观众连接
type WishClient struct {
	conn      *websocket.Conn
	send      chan []byte
	closed    int32     // 原子操作标志，0=开启，1=关闭
	lastPing  time.Time // 最后一次ping时间
	createdAt time.Time // 连接建立时间
}

// WishHub 管理许愿池的所有 WebSocket 连接
// 许愿池只有一个"房间"：任何人许愿，所有在线观众都能看到
type WishHub struct {
	clients       map[*WishClient]bool
	broadcast     chan []byte
	register      chan *WishClient
	unregister    chan *WishClient
	shutdown      chan bool
	mutex         sync.RWMutex
	pingTimeout   time.Duration
	cleanupTicker *time.Ticker
}

// 全局许愿池连接管理器
var wishHub = &WishHub{
	clients:     make(map[*WishClient]bool),
	broadcast:   make(chan []byte, 256),
	register:    make(chan *WishClient, 64),
	unregister:  make(chan *WishClient, 64),
	shutdown:    make(chan bool, 1),
	pingTimeout: 60 * time.Second,
}

func init() {
	go wishHub.run()
}

// ========================================
// WishClient 方法
// ========================================

// Close 安全关闭客户端连接
func (client *WishClient) Close() {
	if atomic.CompareAndSwapInt32(&client.closed, 0, 1) {
		// 只设置关闭标志，send 通道由写协程的 defer 负责关闭
		if client.conn != nil {
			client.conn.Close()
		}
	}
}

// IsClosed 检查连接是否已关闭
func (client *WishClient) IsClosed() bool {
	return atomic.LoadInt32(&client.closed) == 1
}

// UpdatePing 更新最后ping时间
func (client *WishClient) UpdatePing() {
	client.lastPing = time.Now()
}

// IsExpired 检查连接是否超时
func (client *WishClient) IsExpired(timeout time.Duration) bool {
	if timeout <= 0 {
		return true
	}
	return time.Since(client.lastPing) > timeout
}

// ========================================
// WishHub 方法
// ========================================

// run 运行连接管理主循环
func (hub *WishHub) run() {
	hub.cleanupTicker = time.NewTicker(30 * time.Second)
	defer hub.cleanupTicker.Stop()

	for {
		select {
		case client := <-hub.register:
			hub.registerClient(client)

		case client := <-hub.unregister:
			hub.unregisterClient(client)

		case <-hub.cleanupTicker.C:
			hub.cleanupExpired()

		case message := <-hub.broadcast:
			hub.broadcastMessage(message)

		case <-hub.shutdown:
			hub.closeAll()
			return
		}
	}
}

// registerClient 注册新观众
func (hub *WishHub) registerClient(client *WishClient) {
	if client == nil {
		return
	}

	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	hub.clients[client] = true
	client.UpdatePing()

	log.Printf("✅ 许愿池观众已连接（在线 %d 人）", len(hub.clients))
}

// unregisterClient 安全注销观众
func (hub *WishHub) unregisterClient(client *WishClient) {
	if client == nil {
		return
	}

	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	delete(hub.clients, client)

	if !client.IsClosed() {
		client.Close()
	}

	log.Printf("🔌 许愿池观众已断开（在线 %d 人）", len(hub.clients))
}

// cleanupExpired 清理过期和死连接
func (hub *WishHub) cleanupExpired() {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	for client := range hub.clients {
		if client.IsClosed() || client.IsExpired(hub.pingTimeout) {
			delete(hub.clients, client)
			if !client.IsClosed() {
				client.Close()
			}
		}
	}
}

// broadcastMessage 把消息分发给所有在线观众
func (hub *WishHub) broadcastMessage(message []byte) {
	hub.mutex.RLock()
	targets := make([]*WishClient, 0, len(hub.clients))
	for client := range hub.clients {
		if !client.IsClosed() {
			targets = append(targets, client)
		}
	}
	hub.mutex.RUnlock()

	for _, client := range targets {
		select {
		case client.send <- message:
		default:
			// 队列满说明对端读取过慢，断开由清理协程处理
			client.Close()
		}
	}
}

// closeAll 关闭所有连接
func (hub *WishHub) closeAll() {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	for client := range hub.clients {
		client.Close()
	}
	hub.clients = make(map[*WishClient]bool)
}

// ClientCount 返回当前在线观众数
func (hub *WishHub) ClientCount() int {
	hub.mutex.RLock()
	defer hub.mutex.RUnlock()
	return len(hub.clients)
}

// BroadcastWish 向所有在线观众推送一条新愿望
func (hub *WishHub) BroadcastWish(wish models.Wish) {
	message := map[string]interface{}{
		"type":      "wish",
		"wish":      wish,
		"timestamp": time.Now().Format(time.RFC3339),
	}

	msgBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ 序列化愿望广播失败: %v", err)
		return
	}

	select {
	case hub.broadcast <- msgBytes:
	default:
		log.Printf("⚠️ 愿望广播队列已满，消息被丢弃")
	}
}

// ========================================
// 读写协程
// ========================================

// handleWishSocketWrites 把 send 队列里的消息写到连接，并维持心跳
func handleWishSocketWrites(client *WishClient) {
	pingTicker := time.NewTicker(30 * time.Second)
	defer func() {
		pingTicker.Stop()
		close(client.send)
		client.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}

			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-pingTicker.C:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleWishSocketReads 消费对端消息，目前只用于探测断连和pong
func handleWishSocketReads(client *WishClient) {
	defer func() {
		select {
		case wishHub.unregister <- client:
		case <-time.After(100 * time.Millisecond):
			client.Close()
		}
	}()

	client.conn.SetReadLimit(4096)
	client.conn.SetReadDeadline(time.Now().Add(wishHub.pingTimeout))
	client.conn.SetPongHandler(func(string) error {
		client.UpdatePing()
		client.conn.SetReadDeadline(time.Now().Add(wishHub.pingTimeout))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
		client.UpdatePing()
	}
}

// WishWebSocket 处理 GET /ws/wishes 连接升级
func WishWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ WebSocket 升级失败: %v", err)
		return
	}

	client := &WishClient{
		conn:      conn,
		send:      make(chan []byte, 64),
		lastPing:  time.Now(),
		createdAt: time.Now(),
	}

	wishHub.register <- client

	go handleWishSocketWrites(client)
	go handleWishSocketReads(client)
}
