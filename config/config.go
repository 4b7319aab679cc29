package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	viper *viper.Viper
}

func (c *Config) GetDiscordToken() string {
	return c.viper.GetString("discord.token")
}

func (c *Config) GetDiscordAppID() string {
	return c.viper.GetString("discord.app_id")
}

// GetDevGuildID is the guild commands are registered against in dev mode.
func (c *Config) GetDevGuildID() string {
	return c.viper.GetString("discord.dev_guild_id")
}

func (c *Config) DevMode() bool {
	return c.viper.GetBool("dev_mode")
}

// GetDevUserID identifies the developer account that bypasses all
// authorization policies. Empty disables the bypass.
func (c *Config) GetDevUserID() string {
	return c.viper.GetString("dev_user_id")
}

func (c *Config) GetDBPath() string {
	return c.viper.GetString("db.path")
}

func (c *Config) GetDefaultColor() string {
	return c.viper.GetString("style.default_color")
}

func (c *Config) GetNotifyColor() string {
	return c.viper.GetString("style.notify_color")
}

func (c *Config) GetListColor() string {
	return c.viper.GetString("style.list_color")
}

func (c *Config) GetFooterText() string {
	return c.viper.GetString("style.footer_text")
}

// GetMaxSelectOptions is the platform cap on selectable items per menu.
func (c *Config) GetMaxSelectOptions() int {
	return c.viper.GetInt("style.max_select_options")
}

func LoadConfig() (*Config, error) {
	v := viper.New()

	config := Config{
		viper: v,
	}

	v.SetEnvPrefix("CC")

	_ = v.BindEnv("discord.token", "CC_DISCORD_TOKEN")
	_ = v.BindEnv("discord.app_id", "CC_DISCORD_APP_ID")
	_ = v.BindEnv("discord.dev_guild_id", "CC_DEV_GUILD_ID")

	_ = v.BindEnv("dev_mode", "CC_DEV_MODE")
	_ = v.BindEnv("dev_user_id", "CC_DEV_USER_ID")

	_ = v.BindEnv("db.path", "CC_DB_PATH")

	_ = v.BindEnv("style.default_color", "CC_DEFAULT_COLOR")
	_ = v.BindEnv("style.notify_color", "CC_NOTIFY_COLOR")
	_ = v.BindEnv("style.list_color", "CC_LIST_COLOR")
	_ = v.BindEnv("style.footer_text", "CC_FOOTER_TEXT")

	v.SetDefault("db.path", "data/events.db")
	v.SetDefault("style.default_color", "#3498db")
	v.SetDefault("style.notify_color", "#0cf400")
	v.SetDefault("style.list_color", "#00b0f4")
	v.SetDefault("style.footer_text", "ChronoCord | Alpha")
	v.SetDefault("style.max_select_options", 25)

	return &config, nil
}
