package app

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーを起動する。引数なしの既定。
	CommandServe Command = "serve"
	// CommandMigrate は埋め込みマイグレーションを適用して終了する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck はローカルの/healthを叩いて終了する。
	// シェルの無いdistrolessイメージのHEALTHCHECKから使う。
	CommandHealthcheck Command = "healthcheck"
)

var knownCommands = map[string]Command{
	string(CommandServe):       CommandServe,
	string(CommandMigrate):     CommandMigrate,
	string(CommandHealthcheck): CommandHealthcheck,
}

// ParseCommand は先頭の引数をサブコマンドとして解釈する。
// 未知のコマンドや引数なしはserveとして扱い、2番目以降の引数は無視する。
func ParseCommand(args []string) Command {
	if len(args) > 0 {
		if cmd, ok := knownCommands[args[0]]; ok {
			return cmd
		}
	}
	return CommandServe
}
