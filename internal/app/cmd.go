package app

// Version はビルド時に -ldflags "-X .../internal/app.Version=..." で埋め込まれる。
var Version = "dev"

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はWebクライアントを起動する。
	CommandServe Command = "serve"
	// CommandHealthcheck は起動中のクライアントの /health を確認する。
	// distrolessイメージにはcurlがないため、Dockerのヘルスチェックから呼ぶ。
	CommandHealthcheck Command = "healthcheck"
	// CommandVersion はバージョンを表示して終了する。
	CommandVersion Command = "version"
)

// ParseCommand はフラグ解析後の位置引数からサブコマンドを決める。
// 引数が空、または知らないコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch Command(args[0]) {
	case CommandHealthcheck, CommandVersion:
		return Command(args[0])
	default:
		return CommandServe
	}
}
