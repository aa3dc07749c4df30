package arena

// EnemyTemplate - шаблон врага.
type EnemyTemplate struct {
	Kind  string
	Lives int
}

var (
	Balloon = EnemyTemplate{Kind: "balloon", Lives: 1}
	Ghost   = EnemyTemplate{Kind: "ghost", Lives: 1}
	Tank    = EnemyTemplate{Kind: "tank", Lives: 2}
)

// EnemyTemplates - реестр шаблонов по имени
var EnemyTemplates = map[string]EnemyTemplate{
	"balloon": Balloon,
	"ghost":   Ghost,
	"tank":    Tank,
}
