package usecase

import "github.com/oksasatya/medication-reminder/internal/domain/repository"

// UserUseCases groups every user operation wired to one repository.
type UserUseCases struct {
	Login          *LoginUser
	Register       *RegisterUser
	Logout         *LogoutUser
	Update         *UpdateUser
	Delete         *DeleteUser
	Find           *FindUser
	GetCurrentUser *GetCurrentUser
}

func NewUserUseCases(repo repository.UserRepository) UserUseCases {
	return UserUseCases{
		Login:          NewLoginUser(repo),
		Register:       NewRegisterUser(repo),
		Logout:         NewLogoutUser(repo),
		Update:         NewUpdateUser(repo),
		Delete:         NewDeleteUser(repo),
		Find:           NewFindUser(repo),
		GetCurrentUser: NewGetCurrentUser(repo),
	}
}

// MedicamentoUseCases groups every medicamento operation for one owner.
type MedicamentoUseCases struct {
	Adicionar *AdicionarMedicamento
	Editar    *EditarMedicamento
	Excluir   *ExcluirMedicamento
	Listar    *ListarMedicamentos
	Obter     *ObterMedicamentoPorID
	Buscar    *BuscarMedicamentos
}

func NewMedicamentoUseCases(repo repository.MedicamentoRepository) MedicamentoUseCases {
	return MedicamentoUseCases{
		Adicionar: NewAdicionarMedicamento(repo),
		Editar:    NewEditarMedicamento(repo),
		Excluir:   NewExcluirMedicamento(repo),
		Listar:    NewListarMedicamentos(repo),
		Obter:     NewObterMedicamentoPorID(repo),
		Buscar:    NewBuscarMedicamentos(repo),
	}
}
