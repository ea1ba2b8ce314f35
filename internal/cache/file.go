package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ticketPlatform/internal/models"
	"ticketPlatform/pkg/metrics"

	"github.com/bytedance/sonic"
	"github.com/zeromicro/go-zero/core/logc"
)

type (
	// FileCache 单个 JSON 文件保存全部服务的缓存, 每次操作整体读写
	FileCache struct {
		path string
		mu   sync.Mutex
		now  nowFunc
	}

	fileDocument struct {
		Servers map[string]*fileServer `json:"servers"`
	}

	fileServer struct {
		Entries map[string]entry `json:"entries"`
	}
)

func NewFileCache(path string) *FileCache {
	return &FileCache{
		path: path,
		now:  time.Now,
	}
}

func (f *FileCache) Get(serverId, fingerprint string, ttl time.Duration) ([]models.NormalizedProblem, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc := f.load()
	s, ok := doc.Servers[serverId]
	if !ok {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	e, ok := s.Entries[fingerprint]
	if !ok || e.expired(f.now(), ttl) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return e.Payload, true
}

func (f *FileCache) Set(serverId, fingerprint string, payload []models.NormalizedProblem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if payload == nil {
		payload = []models.NormalizedProblem{}
	}

	doc := f.load()
	s, ok := doc.Servers[serverId]
	if !ok || s == nil {
		s = &fileServer{Entries: map[string]entry{}}
		doc.Servers[serverId] = s
	}
	if s.Entries == nil {
		s.Entries = map[string]entry{}
	}

	s.Entries[fingerprint] = entry{
		Ts:      f.now().Unix(),
		Payload: payload,
	}

	return f.save(doc)
}

func (f *FileCache) ClearServer(serverId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc := f.load()
	if _, ok := doc.Servers[serverId]; !ok {
		return nil
	}

	delete(doc.Servers, serverId)
	return f.save(doc)
}

// load 文件缺失或损坏时按空缓存处理
func (f *FileCache) load() fileDocument {
	doc := fileDocument{Servers: map[string]*fileServer{}}

	b, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logc.Errorf(context.Background(), "读取缓存文件失败, path: %s, err: %s", f.path, err.Error())
		}
		return doc
	}

	if err := sonic.Unmarshal(b, &doc); err != nil {
		logc.Errorf(context.Background(), "解析缓存文件失败, path: %s, err: %s", f.path, err.Error())
		return fileDocument{Servers: map[string]*fileServer{}}
	}
	if doc.Servers == nil {
		doc.Servers = map[string]*fileServer{}
	}

	return doc
}

// save 先写临时文件再 rename, 读者不会看到写了一半的文档
func (f *FileCache) save(doc fileDocument) error {
	b, err := sonic.Marshal(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".ticket-cache-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), f.path)
}
