package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yeisme/filecdn/pkg/configs"
)

func init() {
	RegisterFactory(configs.ContentTypeLocal, func(_ context.Context, opts Options) (Store, error) {
		opts.Logger.Info().Str("root", opts.Config.Local.Root).Msg("local content store ready")

		return NewLocalStore(opts.Config.Local.Root), nil
	})
}

const (
	dirPerm  = 0o750
	filePerm = 0o640
)

// LocalStore 把每个文件平铺保存为 root/<id>. 根目录在首次写入时创建.
type LocalStore struct {
	root string
}

// NewLocalStore 创建本地目录存储.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Root 返回存储根目录.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) path(id string) (string, error) {
	if err := checkKey(id); err != nil {
		return "", err
	}

	return filepath.Join(s.root, id), nil
}

func (s *LocalStore) Write(_ context.Context, id string, data []byte) ([]byte, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.root, dirPerm); err != nil {
		return nil, fmt.Errorf("create content root %s: %w", s.root, err)
	}

	if err := writeAtomic(p, data); err != nil {
		return nil, err
	}

	return data, nil
}

func (s *LocalStore) Read(_ context.Context, id string) ([]byte, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}

	if err != nil {
		return nil, fmt.Errorf("read content %s: %w", id, err)
	}

	return data, nil
}

func (s *LocalStore) Replace(ctx context.Context, id string, data []byte) ([]byte, error) {
	ok, err := s.Exists(ctx, id)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrNotExist
	}

	p, err := s.path(id)
	if err != nil {
		return nil, err
	}

	if err := writeAtomic(p, data); err != nil {
		return nil, err
	}

	return data, nil
}

func (s *LocalStore) Exists(_ context.Context, id string) (bool, error) {
	p, err := s.path(id)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("stat content %s: %w", id, err)
	}

	return info.Mode().IsRegular(), nil
}

// Ping 根目录不存在视为健康（首次写入时创建），存在但不是目录则报错.
func (s *LocalStore) Ping(_ context.Context) error {
	info, err := os.Stat(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}

	if !info.IsDir() {
		return fmt.Errorf("content root %s is not a directory", s.root)
	}

	return nil
}

// writeAtomic 先写入同目录的临时文件再重命名，读者不会看到写了一半的内容.
func writeAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmp := f.Name()
	cleanup := func() { _ = os.Remove(tmp) }

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()

		return fmt.Errorf("write temp file: %w", err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		cleanup()

		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		cleanup()

		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Chmod(tmp, filePerm); err != nil {
		cleanup()

		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		cleanup()

		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
