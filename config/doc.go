// Package config loads yagpt settings.
//
// Settings come from a YAML file, an optional .env file and YAGPT_*
// environment variables, in increasing order of precedence. The file is
// taken from an explicit path or the first of ./yagpt.yml,
// ./config/yagpt.yml and $HOME/.config/yagpt/config.yml that exists.
//
// Environment variables map onto nested keys with underscores:
//
//	YAGPT_FOUNDATION_FOLDER_ID=b1g...  ->  foundation.folder_id
//	YAGPT_LOGGING_LEVEL=debug          ->  logging.level
package config
