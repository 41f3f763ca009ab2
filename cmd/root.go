/*
Copyright 2026 The latent-search Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/bomac1193/latent-search/internal/spotify"
	"github.com/bomac1193/latent-search/internal/store"
)

var cfgFile string
var spotifyClientID string
var spotifyClientSecret string
var spotifyRedirectURI string
var spotifyAccessToken string
var scanUser string
var databasePath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "latent-search",
	Short: "Finds artists your listening history points at but never reached",
	Long: `Builds a listening context profile from Spotify time-range data,
expands it through related artists, and scores the omissions.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.latent-search.yaml)")

	rootCmd.PersistentFlags().StringVar(
		&spotifyClientID, "client_id", "", "Spotify application client id")
	viper.BindPFlag("client_id", rootCmd.PersistentFlags().Lookup("client_id"))

	rootCmd.PersistentFlags().StringVar(
		&spotifyClientSecret, "client_secret", "", "Spotify application client secret")
	viper.BindPFlag("client_secret", rootCmd.PersistentFlags().Lookup("client_secret"))

	rootCmd.PersistentFlags().StringVar(
		&spotifyRedirectURI, "redirect_uri", "http://localhost:8080/auth/spotify/callback", "Spotify OAuth redirect URI")
	viper.BindPFlag("redirect_uri", rootCmd.PersistentFlags().Lookup("redirect_uri"))

	rootCmd.PersistentFlags().StringVar(
		&spotifyAccessToken, "access_token", "", "Spotify access token (bypasses stored credentials)")
	viper.BindPFlag("access_token", rootCmd.PersistentFlags().Lookup("access_token"))

	rootCmd.PersistentFlags().StringVarP(
		&scanUser, "user", "u", "default", "local username to act on")
	viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))

	rootCmd.PersistentFlags().StringVarP(
		&databasePath, "database", "d", "./latent-search.db", "Path to the SQLite database")
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".latent-search" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".latent-search")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.Flags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

func openStore() (*store.Store, error) {
	return store.New(viper.GetString("database"))
}

func credentials() spotify.Credentials {
	return spotify.Credentials{
		ClientID:     viper.GetString("client_id"),
		ClientSecret: viper.GetString("client_secret"),
		RedirectURI:  viper.GetString("redirect_uri"),
	}
}

// spotifyClient returns an API client for the user, preferring an explicit
// --access_token and falling back to stored credentials, refreshing them
// when expired.
func spotifyClient(ctx context.Context, db *store.Store, user string) (*spotify.Client, error) {
	if token := viper.GetString("access_token"); token != "" {
		return spotify.NewClient(token), nil
	}

	tok, err := db.GetToken(user)
	if err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("no stored credentials for %q, run authenticate first", user)
	}
	if tok.Valid() {
		return spotify.NewClient(tok.AccessToken), nil
	}

	fresh, err := credentials().Refresh(ctx, tok.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("refreshing token for %q: %w", user, err)
	}
	if err := db.SetToken(user, store.Token{
		AccessToken:  fresh.AccessToken,
		RefreshToken: fresh.RefreshToken,
		Expiry:       fresh.Expiry,
	}); err != nil {
		return nil, err
	}
	return spotify.NewClient(fresh.AccessToken), nil
}
