package orgchart

import "context"

// Store は社員フォレストの永続化境界です。
// Load は *LoadError、Save は *SaveError で失敗します。
type Store interface {
	Load(ctx context.Context) (Forest, error)
	Save(ctx context.Context, forest Forest) error
}

// Loader は初期表示用に現在のフォレストを取得します。
type Loader interface {
	Load(ctx context.Context) (Forest, error)
}

// Broadcaster は変更通知の配信先です。
type Broadcaster interface {
	Publish(topic string, payload any)
}
