package session

import "errors"

var (
	MissingAccessTokenErr = errors.New("login response carried no access token")
	NilAPIClientErr       = errors.New("api client is required")
	NilTokenRepoErr       = errors.New("token repo is required")
)
