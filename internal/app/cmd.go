package app

// Command はフィードバックボードの起動モードを表す。
// 同一バイナリをサブコマンドで使い分ける（docker-composeのapi/workerサービスに対応）。
type Command string

const (
	// CommandServe はフィードバックボードAPIサーバーとして起動することを示す。
	CommandServe Command = "serve"
	// CommandWorker は期限切れセッションのクリーンアップワーカーとして起動することを示す。
	CommandWorker Command = "worker"
	// CommandMigrate はusers/feedback/sessionsスキーマのマイグレーションを適用して終了することを示す。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は/healthエンドポイントを照会して終了することを示す。
	// シェルを持たないdistrolessイメージのDocker HEALTHCHECK用。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand は第1引数からサブコマンドを解析する。
// 引数なし・未知のサブコマンドはどちらもserveにフォールバックする。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "serve":
		return CommandServe
	case "worker":
		return CommandWorker
	case "migrate":
		return CommandMigrate
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}
