package container

// Options holds all runtime configuration, populated by humacli from
// flags and environment variables.
type Options struct {
	Port        int    `default:"8888"                                      help:"Port to listen on"                        short:"p"`
	BaseURL     string `default:"http://localhost:8888"                     help:"Public base URL used in short links"`
	CodeLength  int    `default:"8"                                         help:"Length of generated short codes"          short:"c"`
	RedisAddr   string `default:"localhost:6379"                            help:"Redis server address"                     short:"r"`
	PostgresDSN string `default:"postgres://localhost:5432/bouncerlink"     help:"PostgreSQL connection string"`
	CacheTTL    int    `default:"30"                                        help:"Link cache TTL in seconds (0 disables)"`
	JWTSecret   string `default:""                                          help:"HS256 secret for verifying bearer tokens"`
	LogFormat   string `default:"console"                                   help:"Log format: console or json"`

	SMTPHost      string `default:"localhost"   help:"SMTP server host"`
	SMTPPort      int    `default:"587"         help:"SMTP server port"`
	SMTPUsername  string `default:""            help:"SMTP username"`
	SMTPPassword  string `default:""            help:"SMTP password"`
	SMTPFrom      string `default:""            help:"Sender address for notifications"`
	NotifyTimeout int    `default:"5"           help:"Per-notification delivery timeout in seconds"`
}
