package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name ResultRepository --dir ../domain/match --output domain/match --outpkg matchmock --filename result_repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name RulesRepository --dir ../domain/scoring --output domain/scoring --outpkg scoringmock --filename rules_repository_mock.go
