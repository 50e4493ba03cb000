package orgchart

// Employee は組織図上の 1 ノードです。Subordinates は直属の部下を挿入順に保持します。
type Employee struct {
	ID           string
	Name         string
	Role         string
	Image        string
	Subordinates Forest
}

// Forest はトップレベル社員の並びです。単一のルートは持ちません。
type Forest []Employee

// Row は Flatten が返す表示用の 1 行です。Depth はトップレベルが 0 です。
type Row struct {
	Employee Employee
	Depth    int
}

// EmployeePatch は Update に渡す部分更新です。nil のフィールドは変更しません。
type EmployeePatch struct {
	ID    string
	Name  *string
	Role  *string
	Image *string
}

// UpdatedEvent は TopicEmployeesUpdated で配信されるペイロードです。
// Revision は確定順に増えるため、古い通知の判別に使えます。
type UpdatedEvent struct {
	Employees Forest
	Revision  uint64
}

// TopicEmployeesUpdated は社員フォレスト更新の配信トピック名です。
const TopicEmployeesUpdated = "employeesUpdated"
